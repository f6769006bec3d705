// Package model defines the view schema data model shared by every stage of
// the pipeline: field definitions, predicates, layouts and relation options.
//
// A ViewSchema is the persisted unit. Field identity is the field name and
// field order is the order of the Fields slice.
package model
