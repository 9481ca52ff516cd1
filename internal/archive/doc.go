// Package archive persists fetched resources into a mirrored directory
// tree. Layout mirrors the server: one directory per host under the
// output root, selectors become relative paths beneath it, and menus
// are written as gophermap files inside their directory.
package archive
