package binder_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracepanic/compyle/binder"
)

type pathRequest struct {
	ID      string `path:"id,required"`
	Page    int    `path:"page"`
	Ignored string `path:"-"`
	Plain   string
}

func mapExtractor(params map[string]string) func(*http.Request, string) string {
	return func(_ *http.Request, name string) string { return params[name] }
}

func TestPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  map[string]string
		want    pathRequest
		wantErr error
	}{
		{
			name:   "binds string and int",
			params: map[string]string{"id": "abc", "page": "3", "Ignored": "x"},
			want:   pathRequest{ID: "abc", Page: 3},
		},
		{
			name:    "missing required param",
			params:  map[string]string{"page": "1"},
			wantErr: binder.ErrMissingParam,
		},
		{
			name:    "invalid int",
			params:  map[string]string{"id": "abc", "page": "two"},
			wantErr: binder.ErrInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var got pathRequest
			err := binder.Path(mapExtractor(tt.params))(httptest.NewRequest(http.MethodGet, "/", nil), &got)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPathInvalidTarget(t *testing.T) {
	t.Parallel()

	bind := binder.Path(mapExtractor(nil))
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	var s string
	assert.ErrorIs(t, bind(r, &s), binder.ErrInvalidTarget)
	assert.ErrorIs(t, bind(r, pathRequest{}), binder.ErrInvalidTarget)
	assert.ErrorIs(t, binder.Path(nil)(r, &pathRequest{}), binder.ErrNilExtractor)
}

func TestQuery(t *testing.T) {
	t.Parallel()

	type listRequest struct {
		Limit  uint `query:"limit"`
		Unread bool `query:"unread"`
	}

	var got listRequest
	r := httptest.NewRequest(http.MethodGet, "/?limit=10&unread=true", nil)
	require.NoError(t, binder.Query()(r, &got))
	assert.Equal(t, listRequest{Limit: 10, Unread: true}, got)

	r = httptest.NewRequest(http.MethodGet, "/?limit=-1", nil)
	assert.ErrorIs(t, binder.Query()(r, &got), binder.ErrInvalidValue)
}
