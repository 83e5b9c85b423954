// Package audio renders pronunciation scripts into audio assets. The
// speech gateway synthesizes each voice segment through the external
// text-to-speech service and splices the segments into one continuous
// PCM WAV asset whose silence gaps match the script's offsets exactly.
// The package also owns sequential audio filename assignment.
package audio
