// Package classifier decides whether a notification is an incoming call from
// a trusted contact.
//
// Classification is stateless: the source allow-list is fixed at construction
// and the trusted contacts are passed in as a snapshot on every call. Call
// signals are OR-ed together, so any one of them is enough.
package classifier
