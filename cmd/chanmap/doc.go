// Package main hosts the chanmap CLI entrypoint and command graph.
//
// Invoked with a single metadata file, chanmap writes the Kilosort channel
// map next to it (or wherever the config and flags direct). Subcommands
// inspect a metadata file without writing, verify an existing channel map,
// list the conversion history, and scaffold configuration.
//
// Keep this package lean: conversion logic lives in internal/convert and the
// packages it drives; commands here only resolve config, build loggers, and
// render results.
package main
