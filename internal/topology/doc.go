// Package topology describes the process model a sequence log is checked
// against: the entry, fork and exit labels shared by every cycle, and the
// alternative branches a cycle may take between fork and exit.
//
// The reference model is returned by Default. Alternative models can be
// loaded from CUE files with LoadCUE, e.g.:
//
//	topology: {
//		name:  "reference"
//		entry: "T00"
//		fork:  "T01"
//		exit:  "T11"
//		branches: [
//			{type: "IT1", key: "top", name: "IT1: top branch (T02-T03-T04)", labels: ["T02", "T03", "T04"]},
//			{type: "IT2", key: "mid", name: "IT2: middle branch (T05-T06)", labels: ["T05", "T06"]},
//		]
//	}
//
// Branch order is classification priority.
package topology
