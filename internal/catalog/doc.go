// Package catalog answers the five catalog operations (list, get, specs,
// search, changelog) and the resource channel for one project.
//
// A Catalog holds no state between calls. Every operation enumerates the
// backing source.Source afresh, so answers always reflect the current tree or
// remote branch. Failures that a caller can provoke are returned as errors and
// turned into {"error": "..."} documents by Failure; nothing here panics on
// user input.
//
// Content search reads every non-excluded component, so its cost grows with
// the size of the whole component tree.
package catalog
