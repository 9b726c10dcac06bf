/*
Package dsg is the client side of a Dynamic Scene Graph (DSG) session.

A DSG server streams a 3D scene as typed update commands: groups, views,
palette variables, parts, and the geometry chunks that fill those parts.
This package reassembles that stream into complete parts and hands each one
to a consumer-supplied UpdateHandler, together with the scene registries it
needs to interpret it.

# Concept

A Session is a state machine that cycles Idle -> UpdateInProgress -> Idle
once per scene refresh. Geometry arrives in chunks that may be out of order
and may be split arbitrarily; the session merges them into flat arrays and
finalizes the current part whenever a new part starts or the refresh ends.
Every part is finalized exactly once, including the empty one that exists
before the first UPDATE_PART.

The Session itself does no I/O. The runner package owns the connection: a
receiver goroutine reads commands into a queue and a single consumer
dispatches them into the Session.

# Usage

	type printer struct{ ports.NopHandler }

	func (printer) FinalizePart(ctx context.Context, scene *domain.Scene, part *domain.Part) error {
		surface, err := mesh.NodalSurfaceRep(part, mesh.NormalizerFor(scene), scene.Variables)
		if err != nil || surface == nil {
			return err
		}
		fmt.Println(part.Info.Name, len(surface.Indices)/3, "triangles")
		return nil
	}

	func main() {
		session, err := dsg.New(printer{}, dsg.WithNormalize(true))
		if err != nil {
			log.Fatal(err)
		}

		conn, err := grpc.NewConnector("localhost:12345").Connect(ctx)
		if err != nil {
			log.Fatal(err)
		}

		r := runner.New(session, conn)
		if err := r.Start(ctx); err != nil {
			log.Fatal(err)
		}
		defer r.Close(ctx)

		if err := r.HandleOneUpdate(ctx); err != nil {
			log.Fatal(err)
		}
	}
*/
package dsg
