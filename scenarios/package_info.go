// Package scenarios contains the functional scenarios run against the users/todos service,
// and the T type they are written against.
//
// Infrastructure that is not specific to this service, such as running named scenarios and
// collecting their results, is in the lower-level framework package.
package scenarios
