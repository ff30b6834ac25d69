// See package heracles's doc comment in heracles.go for the overview;
// this file exists to group package-level constants that don't belong
// to any one file.
package heracles

// DefaultContextLines is the number of lines of surrounding context
// diffutil.Unified renders around each changed region in a save
// preview.
const DefaultContextLines = 3
