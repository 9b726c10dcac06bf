/*
Package handler provides ready-made ports.UpdateHandler implementations.

  - Recorder reconstructs every finalized part with package mesh and keeps a
    summary of the last completed scene.
  - Dedup skips parts whose digest has not changed since they were last seen.
  - Multi fans every callback out to several handlers.
*/
package handler
