/*
Package ports defines the driven ports (interfaces) consumed by the pathflow core.

These interfaces decouple the command protocol from the canvas, the dialog widgets
and the persistent model, so flows can be driven by a GUI, an HTTP host, or a
headless replay script.

# Key Interfaces

  - Model: Read/query the working model and apply changes that return reversible deltas.
  - DialogPresenter: Shows a modal dialog described by a domain.DialogRequest.
  - InteractionManager: Installs and discards mouse-interaction modes.
  - SelectionResolver: Resolves a canvas point to a domain object.
  - ChangePublisher: Fans out committed model-change events.
*/
package ports
