// Package components implements the field component map: a registry that
// resolves a field definition to the component that renders and normalises
// its value. Unknown field types resolve to the plain text input.
//
// Components are fully controlled. Output depends only on Props, and any
// change a user makes is reported back through the caller's value map.
package components
