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

import "errors"

// ErrUnexpectedField indicates a top-level document field the decoder does
// not recognize. The decode aborts and the open transaction is rolled back.
var ErrUnexpectedField = errors.New("graphson: unexpected top-level field")

// ErrMalformedRecord indicates a vertex or edge record that does not match
// the wire format.
var ErrMalformedRecord = errors.New("graphson: malformed record")

// ErrUnknownVertex indicates an edge record whose endpoint identifier was
// never declared in the document's vertices array.
var ErrUnknownVertex = errors.New("graphson: unknown endpoint vertex")

// ErrTransaction wraps a failure from the target graph's commit or rollback.
// The decoder never retries; partial batches committed before the failure
// remain in the target graph.
var ErrTransaction = errors.New("graphson: transaction failure")
