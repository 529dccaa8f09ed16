// Package notify holds the choir notification model: picking which
// pending article and calendar entries to announce, resolving recipient
// lists and composing the plain-text emails.
//
// Everything here is pure; the store and the job runner supply the rows
// and deliver the resulting [Notice] values.
package notify
