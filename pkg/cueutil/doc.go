// SPDX-License-Identifier: MPL-2.0

// Package cueutil decodes documents through an embedded CUE schema.
//
// Every structured input hslink reads goes through the same three steps:
//
//  1. Compile the embedded schema
//  2. Compile (or, for JSON input, extract) the user document and unify it
//     with a schema definition
//  3. Validate and decode into a Go struct
//
// # Usage
//
//	//go:embed plan_schema.cue
//	var planSchema []byte
//
//	result, err := cueutil.ParseAndDecode[Plan](
//	    planSchema,
//	    data,
//	    "#Plan",
//	    cueutil.WithFilename("dist-newstyle/cache/plan.json"),
//	    cueutil.WithJSONInput(),
//	)
//	if err != nil {
//	    return nil, err // message carries the offending field path
//	}
//	return result.Value, nil
package cueutil
