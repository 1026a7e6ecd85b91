// Package preflight provides readiness checks for the filesystem paths and
// external tools orbitgen depends on.
//
// These checks run in two contexts:
//   - The generate command calls RunAll before encoding so a missing output
//     directory permission or a full disk fails before ffmpeg starts.
//   - The CLI "orbitgen deps" command renders CheckSystemDeps and RunAll
//     together as a readiness table.
package preflight
