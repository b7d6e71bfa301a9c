// Package email provides the outbound email transport used by the
// notification dispatch engine.
//
// EmailSender is the single contract: send one email, get back the
// provider-assigned message id. Two implementations are included: a
// Postmark-backed client for production and a DevSender that writes
// rendered emails to disk for local development.
package email
