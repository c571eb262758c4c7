/*
Package ports defines the driven ports (interfaces) of the arbor engine.

These interfaces decouple the tree builder from the places tree definitions are
stored, so the same definitions can be served from memory, a directory or Redis.

# Key Interfaces

  - TreeLoader: Responsible for loading tree definition documents by tree ID.
*/
package ports
