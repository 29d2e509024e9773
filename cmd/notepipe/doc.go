// Package main hosts the notepipe CLI.
//
// The Cobra command tree resolves configuration once per invocation, builds
// the structured logger, and hands folders to the corpus, split cache, model
// and evaluation packages. Commands stay thin: anything reusable belongs in
// an internal package.
package main
