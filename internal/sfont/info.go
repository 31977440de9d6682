package sfont

import (
	"encoding/binary"
	"fmt"
)

// BankInfo carries the SF2 INFO sub-chunk metadata. Grounded on
// Alextopher-sf/info.go's INFO decoding, restructured to return a value
// instead of printing it.
type BankInfo struct {
	MajorVersion, MinorVersion             uint16
	SoundEngine                            string
	BankName                               string
	ROMName                                string
	ROMMajorVersion, ROMMinorVersion       uint16
	CreationDate, Engineers, Product       string
	Copyright, Comment, Tools              string
}

func parseInfo(c chunk) (BankInfo, error) {
	r, err := listForm(c, "INFO")
	if err != nil {
		return BankInfo{}, err
	}
	info := BankInfo{}
	sawVersion := false
	for {
		sub, ok, err := r.next()
		if err != nil {
			return BankInfo{}, err
		}
		if !ok {
			break
		}
		switch sub.idString() {
		case "ifil":
			if len(sub.data) < 4 {
				return BankInfo{}, errf(TruncatedChunk, "ifil chunk too short")
			}
			info.MajorVersion = binary.LittleEndian.Uint16(sub.data[0:2])
			info.MinorVersion = binary.LittleEndian.Uint16(sub.data[2:4])
			sawVersion = true
		case "iver":
			if len(sub.data) >= 4 {
				info.ROMMajorVersion = binary.LittleEndian.Uint16(sub.data[0:2])
				info.ROMMinorVersion = binary.LittleEndian.Uint16(sub.data[2:4])
			}
		case "isng":
			info.SoundEngine = cstring(sub.data)
		case "INAM":
			info.BankName = cstring(sub.data)
		case "irom":
			info.ROMName = cstring(sub.data)
		case "ICRD":
			info.CreationDate = cstring(sub.data)
		case "IENG":
			info.Engineers = cstring(sub.data)
		case "IPRD":
			info.Product = cstring(sub.data)
		case "ICOP":
			info.Copyright = cstring(sub.data)
		case "ICMT":
			info.Comment = cstring(sub.data)
		case "ISFT":
			info.Tools = cstring(sub.data)
		}
	}
	if !sawVersion {
		return BankInfo{}, errf(InvalidContainer, "INFO missing required ifil version chunk")
	}
	if info.MajorVersion != 2 {
		return BankInfo{}, errf(UnsupportedVersion, fmt.Sprintf("unsupported SoundFont version %d.%d (only major version 2 is supported)", info.MajorVersion, info.MinorVersion))
	}
	return info, nil
}
