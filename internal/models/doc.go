// Package models defines the value types shared by the tabkeeper packages.
//
// # Wire Types
//
// Most types here mirror the JSON bodies of the storefront backend:
//   - Customer: a person who can run a tab (read-only for the client)
//   - Product: a catalog entry with a unit price
//   - LineItem: one product placed on a tab, with its own settlement Status
//   - TabPayload: the body used to read and replace a customer's tab
//   - User: a staff account that signs in to the app
//
// # Local Types
//
// Preferences is never sent to the backend. It holds the theme and font size
// chosen on the device and is stored locally.
//
// # Design Principles
//
//  1. **Copy, don't reference**: a LineItem copies the product price at the
//     moment it is added, so later catalog changes never rewrite a tab.
//  2. **IDs are strings**: the backend assigns all identifiers; the client
//     never generates or parses them.
//  3. **No behavior**: aggregate rules live in the tab package, not here.
package models
