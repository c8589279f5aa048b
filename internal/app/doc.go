// Package app contains the core application logic. It defines the main App
// struct, its configuration, the per-application module registry and error
// channel, and the scripted run used by the command line, decoupled from any
// specific entrypoint.
package app
