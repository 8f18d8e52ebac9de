// Package versionfile implements the version-metadata step of the
// build pipeline.
//
// A project carries a version.yml template describing the executable's
// identity (version quad, product name, copyright, and so on). This
// package parses that template and produces the version-info resource
// file the packaging tool embeds into the executable.
//
// Generation has two modes:
//   - an external generator command, when configured, is invoked via
//     os/exec and is authoritative: any non-zero exit aborts the whole
//     build before packaging starts;
//   - otherwise the resource is produced in-process with the
//     goversioninfo library, compiled from the parsed template.
package versionfile
