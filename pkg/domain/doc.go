/*
Package domain contains the core types of the DSG (Dynamic Scene Graph) session engine.

It defines the scene-update commands received from a DSG server, the scene
entities they describe, and the Part buffer that reassembles chunked geometry.
This package is kept pure and free of I/O or transport concerns, following
Hexagonal Architecture principles.

# Key Entities

  - Command: A tagged union of every record the server can send (scene begin/end,
    groups, views, parts, geometry chunks, variables, textures, deletes).
  - Part: The unit of renderable geometry currently being assembled, including
    the chunk merge logic and its running content hash.
  - Group / View / Variable: Scene hierarchy nodes and palette metadata.
  - Scene: The per-update registries handed to UpdateHandler callbacks.
  - Progress: The status record published while an update is in flight.
*/
package domain
