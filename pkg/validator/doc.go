// Package validator provides small composable rules that are applied
// together and reported as ValidationErrors.
//
//	err := validator.Apply(
//	    validator.Required("title", in.Title),
//	    validator.MaxLen("title", in.Title, 255),
//	    validator.When(in.Link != "", validator.Link("link", in.Link)),
//	)
package validator
