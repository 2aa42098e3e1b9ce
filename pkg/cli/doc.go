// Package cli implements the stepup command line interface: sign-in,
// role inspection, raw list access, and lesson planner workflow actions.
package cli
