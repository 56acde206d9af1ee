// Package states provides reference implementations of sim.State.
package states
