/*
Package ports defines the driven ports (interfaces) of the DSG session engine.

These interfaces decouple the session state machine from the transport, the
renderer backends and the status/fingerprint storage, so the same engine runs
against a live gRPC stream, a capture file or an in-memory script.

# Key Interfaces

  - UpdateHandler: The callback contract implemented by renderer backends.
  - Stream: A bidirectional command stream (CommandSource + RequestSink).
  - StatusWriter: Publishes the progress record (file, Redis, memory).
  - FingerprintStore: Remembers part digests for change detection.
  - ConnectionLocker: Guarantees a single engine drives a given DSG server.
*/
package ports
