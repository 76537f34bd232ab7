// Package sign implements client-side order signing for the venue:
// fixed-point canonicalization of order numerics, the domain-separated
// Pedersen message hash, and Stark-curve signatures over it.
//
// The hash layout (field order, type strings, domain constants) is
// fixed by the venue's protocol version; changing any of it changes
// every signature, so the constants here are covered by known-answer
// tests.
package sign
