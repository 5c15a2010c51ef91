// Package wire packs and unpacks the fixed-size packet images exchanged
// with USMC controllers over USB control transfers.
package wire

// Packet images mirror the controller's own layout, independent of host
// byte order. Multi-byte fields are little-endian unless a field is
// documented big-endian; bit 0 of a flag byte is the first listed flag.
//
// Write packets do not travel as a single buffer: the first 4 bytes of
// the image are carried in the setup stage as the wValue/wIndex words
// (the composition convention differs per message and is encoded by the
// per-packet Setup method), and the remaining bytes form the data stage.
//
// The codec is pure data transformation. It never validates ranges and
// never fails; range checking belongs to the caller.
