// Package speaker plays a transfer.Stream on the default audio output using
// oto. Building with the headless tag replaces it with a stub, so the rest
// of the module never needs an audio driver.
package speaker
