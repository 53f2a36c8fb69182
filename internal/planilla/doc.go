// Package planilla holds the batch registration session: field formatting and validation,
// the invoice ledger of a batch, the submission state machine and the alert channel.
//
// Nothing here performs I/O. Collaborator calls are made by the caller between the Begin and
// Complete halves of an operation.
package planilla
