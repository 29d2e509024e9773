// Package labels decodes the note codes embedded in recording filenames.
//
// A recording named "0103-take2.wav" carries the ordered codes [1, 3]: the
// label segment is everything before the ".wav" extension and the first "-",
// and every two characters of it form one decimal code. Encode builds
// filenames in the same convention, mostly for fixtures.
package labels
