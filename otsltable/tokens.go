/* SPDX-License-Identifier: BSD-2-Clause */

// Package otsltable converts between OTSL (Optimized Table Structure
// Language) token streams and the shared tableir.TableStructure
// intermediate representation.
package otsltable

// Cell type tags.
const (
	tagFilledCell = "fcel"
	tagEmptyCell  = "ecel"
	tagLeftCell   = "lcel"
	tagUpCell     = "ucel"
	tagCrossCell  = "xcel"
)

// Header tags.
const (
	tagColHeader = "ched"
	tagRowHeader = "rhed"
)

// Separator/metadata tags.
const (
	tagNewline = "nl"
)

var cellTags = []string{tagColHeader, tagRowHeader, tagFilledCell, tagEmptyCell, tagLeftCell, tagUpCell, tagCrossCell}
