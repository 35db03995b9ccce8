// Package record provides the registration code record and its fix-up rules.
//
// Each record maps a short code to a place and federal state, or to a special-category
// annotation for codes without a geographic home (nationwide authorities, NATO, the
// Bundeswehr). Rules run once per record, in a fixed order, before place names are
// title-cased.
package record
