// Package io reads and writes heightchart chart files.
//
// # Format
//
// A chart file is a JSON object holding the avatars in board order:
//
//	{
//	  "version": 1,
//	  "title": "Team",
//	  "zoom": 1.2,
//	  "avatars": [
//	    {"id": "a1", "type": "person", "name": "Ana", "height": 172, "color": "#e11d48"},
//	    {"type": "object", "name": "Door", "height": 203, "avatar": "assets/door.png"}
//	  ]
//	}
//
// A bare JSON array of avatars, the share payload shape, is read as a chart
// without a title. Ids are optional; the store assigns missing ones when the
// chart is loaded.
//
// # Import
//
// [ReadJSON] decodes from any io.Reader and [ImportJSON] from a path. Both
// validate every avatar and report the first invalid one by index.
//
// # Export
//
// [WriteJSON] and [ExportJSON] write the object form, indented. A chart
// exported and imported again yields equal avatars.
package io
