package consts

import "os"

// VERSION is the engine version string, surfaced as the global _VERSION
// and printed by the REPL banner.
const VERSION = "0.1.0"

// BuiltinPrefix marks a chunk name as having been resolved from the
// embedded mods filesystem rather than from disk, so error messages
// can tell scripts apart from bundled modules.
const BuiltinPrefix = "[builtin] "

// Debug gates the verbose internal logging in the logger package. It
// is read once from the environment so a release binary stays quiet
// by default.
var Debug = os.Getenv("LUACORE_DEBUG") != ""

// LkPath is the directory bundled modules are extracted into and
// searched from. It mirrors the Lua reference implementation's use of
// an environment variable to locate installed libraries.
var LkPath = os.Getenv("LUACORE_PATH")
