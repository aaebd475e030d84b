/*
Package domain contains the core types of the pathflow command protocol.

It defines the resumable unit of work of a user command (the step state), the
result exchanged with the harness after every step, the descriptors carried by a
suspension (dialog requests and mouse modes), and the reversible deltas and change
events produced by the model layer. The package is kept pure and free of I/O,
following Hexagonal Architecture principles.

# Key Entities

  - StepState: The mutable record of one in-progress flow invocation.
  - CommandResult: The tagged result of one step (keep processing, suspend, or terminal).
  - DialogRequest / DialogResult: A modal dialog suspension and its answer.
  - MouseMode / Point: A mouse-interaction suspension and the click that resumes it.
  - Delta: A reversible change produced by the model (e.g. GroupMembershipChange).
  - ChangeEvent: A model-change notification announced after a transaction commits.
*/
package domain
