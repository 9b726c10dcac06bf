/*
Package capture reads and writes recorded DSG command streams.

A capture file holds the wire envelopes of a session in order, either as a
top-level list or under a "commands" key. YAML and JSON are both accepted:

	commands:
	  - command_type: UPDATE_SCENE_BEGIN
	  - command_type: UPDATE_PART
	    part: {id: 3, name: hull, render: surface}
	  - command_type: UPDATE_GEOM
	    geometry:
	      payload_type: COORDINATES
	      total_array_size: 9
	      flt_array: [0, 0, 0, 1, 0, 0, 0, 1, 0]
	  - command_type: UPDATE_SCENE_END

Captures are replayed through a Connector, so the same runner code serves
live connections and offline inspection.
*/
package capture
