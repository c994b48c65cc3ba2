// Command phasestego hides messages in the phase spectrum of audio files and
// reads them back.
//
// The cover may be WAV, MP3 or FLAC. The stego output is always a mono 16-bit
// WAV file, padded with silence to a whole number of segments. The signal
// carries no length: extracting needs the bit count (or byte length) used
// when embedding.
//
// Usage:
//
//	phasestego embed -in cover.wav -out stego.wav -msg "text"
//	phasestego embed -in cover.flac -out stego.wav -msg-file secret.bin [-min-psnr 30]
//	phasestego extract -in stego.wav -bytes 4 [-out message.bin]
//	phasestego extract -in stego.wav -bits 32
//	phasestego capacity -in cover.wav [-bytes 4]
//	phasestego compare -a "sent" -b "received"
//
// Flags common to embed and extract:
//
//	-workers N     segments transformed in parallel (default: all CPUs)
//	-amplitude A   minimum carrier amplitude in sample units, 0 disables it
//	-v             debug logging
package main
