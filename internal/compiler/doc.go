// Package compiler turns textual tree definitions (YAML or JSON) into domain.Document values.
//
// A document either lists several trees:
//
//	main: MainTree
//	trees:
//	  - id: MainTree
//	    root:
//	      type: Sequence
//	      children:
//	        - type: SaySomething
//	          message: hello
//
// or uses the single-tree shorthand with id and root at the top level.
// Keys of a node other than type, name, ports and children are read as ports.
package compiler
