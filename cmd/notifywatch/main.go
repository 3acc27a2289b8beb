// Command notifywatch is a terminal client for the notification API. It can
// follow the live feed or run one-off mutations.
package main

func main() {
	Execute()
}
