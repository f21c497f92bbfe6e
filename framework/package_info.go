// Package framework contains the low-level infrastructure of the harness that does not
// depend on any particular REST service.
//
// The general model is:
//
// 1. Diagnostics go through a Logger. Console adds the "[INFO]"-style tags that the
// verification reporter uses, and CapturingLogger keeps output in memory.
//
// 2. There is a general notion of a scenario context which is similar to Go's *testing.T,
// allowing pieces of verification logic to be associated with a scenario identifier and to
// accumulate success/failure results. Filters select which scenarios run.
//
// The code that knows which service is being verified is responsible for the resource
// objects, the expectations for each call, and the scenarios themselves.
package framework
