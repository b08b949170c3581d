// SPDX-License-Identifier: MIT

// Package cmd wires the aer CLI: updating package data files, running
// update scripts through the parameter wrapper, inspecting release pages,
// and managing configuration.
package cmd
