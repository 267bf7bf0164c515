// Package catalog finds filter definitions by id.
//
// # Sources
//
// A [Source] lists and loads definitions. Several implementations exist:
//
//   - [DirSource]: definition files in one or more directories, searched in
//     order. Ids may be given with or without an extension.
//   - [EmbeddedSource]: the filters shipped inside the binary
//   - [MongoSource]: definitions stored in a MongoDB collection
//   - [RemoteSource]: definitions published over HTTP next to an index.json
//   - [MultiSource]: several sources, first match wins
//
// The CLI and the server build a MultiSource of the user's directories, an
// optional remote or Mongo catalog, and the embedded filters last, so local
// files shadow built-ins with the same id.
//
// # Display names
//
// [DisplayName] turns an id into a title: "beatnik_1950s" becomes
// "Beatnik (1950s)".
//
// # Linting
//
// [Lint] reports definitions that load but contain dead weight: mappings
// to themselves, keys that collide once case is folded, and suffixes that
// can never match. [Fix] removes what Lint reports where the fix is
// mechanical.
//
// # Hot reload
//
// [Watch] follows the directories of a DirSource and reports changed ids,
// so long-running servers can drop stale compiled filters.
package catalog
