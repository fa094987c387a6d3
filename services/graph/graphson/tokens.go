// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graphson

// Field names of the wire format. The top-level document carries the first
// three; the remaining names appear inside vertex and edge records.
const (
	fieldProperties = "properties"
	fieldVertices   = "vertices"
	fieldEdges      = "edges"

	fieldID        = "id"
	fieldLabel     = "label"
	fieldHiddens   = "hiddens"
	fieldOutV      = "outV"
	fieldOutVLabel = "outVLabel"
	fieldInV       = "inV"
	fieldInVLabel  = "inVLabel"

	// Inline adjacency arrays on a single-vertex record.
	fieldOutE = "outE"
	fieldInE  = "inE"
)
