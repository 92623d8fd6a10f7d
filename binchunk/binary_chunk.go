package binchunk

import (
	"bytes"
	"crypto/md5"
	"errors"
	"fmt"
	"math"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var (
	json = jsoniter.ConfigCompatibleWithStandardLibrary
)

const (
	TAG_NIL       = 0x00
	TAG_BOOLEAN   = 0x01
	TAG_NUMBER    = 0x03
	TAG_INTEGER   = 0x13
	TAG_SHORT_STR = 0x04
	TAG_LONG_STR  = 0x14

	VERSION   = 0.1
	SIGNATURE = `LANG_LK`

	// MismatchVersionPrefix tags the error returned when a compiled
	// chunk was dumped by a different engine version than the one
	// trying to load it.
	MismatchVersionPrefix = "mismatched version: "

	hashLen = 32 // length of a hex-encoded MD5 digest
)

// ErrMismatchedHash is returned by Verify when a compiled chunk's
// embedded source hash no longer matches the hash of the source file
// on disk, meaning the source changed since it was last compiled.
var ErrMismatchedHash = errors.New("mismatched source hash")

// function prototype
type Prototype struct {
	Source          string        `json:"s"` // debug
	LineDefined     uint32        `json:"ld"`
	LastLineDefined uint32        `json:"lld"`
	NumParams       byte          `json:"np"`
	IsVararg        byte          `json:"iv"`
	MaxStackSize    byte          `json:"ms"`
	Code            []uint32      `json:"c"`
	Constants       []interface{} `json:"cs"`
	Upvalues        []Upvalue     `json:"us"`
	Protos          []*Prototype  `json:"ps"`
	LineInfo        []uint32      `json:"li"`  // debug
	LocVars         []LocVar      `json:"lvs"` // debug
	UpvalueNames    []string      `json:"uns"` // debug
}

type Upvalue struct {
	Instack byte `json:"is"`
	Idx     byte `json:"idx"`
}

type LocVar struct {
	VarName string `json:"vn"`
	StartPC uint32 `json:"spc"`
	EndPC   uint32 `json:"epc"`
}

// headerLen is the byte length of everything before the source-hash
// field: the escape byte, the version byte and the signature string.
const headerLen = 1 + 1 + len(SIGNATURE)

func IsJsonChunk(data []byte) (bool, *Prototype) {
	if len(data) < headerLen+hashLen {
		return false, nil
	}
	if !bytes.HasPrefix(data, []byte{'\x1b'}) {
		return false, nil
	}
	if data[1] != byte(math.Float64bits(VERSION)) {
		panic("version not match!")
	}
	data = data[headerLen+hashLen:]
	var proto Prototype
	err := json.Unmarshal(data, &proto)
	return err == nil, &proto
}

// Dump serializes proto into a compiled chunk, stamping it with the
// hash of the source it was compiled from so a later Verify call can
// tell whether the source has since changed.
func (proto *Prototype) Dump(sourceHash string) ([]byte, error) {
	data, err := json.Marshal(proto)
	if err != nil {
		return nil, err
	}

	v := math.Float64bits(VERSION)
	by := []byte{'\x1b'}
	by = append(by, byte(v))
	by = append(by, bytes.NewBufferString(SIGNATURE).Bytes()...)
	hash := sourceHash
	if len(hash) < hashLen {
		hash += strings.Repeat("0", hashLen-len(hash))
	}
	by = append(by, []byte(hash[:hashLen])...)
	data = append(by, data...)
	return data, nil
}

// Load parses a compiled chunk previously produced by Dump, ignoring
// its embedded source hash. Use Verify instead when the chunk's
// freshness against a source file needs to be checked.
func Load(data []byte) (*Prototype, error) {
	proto, _, err := decode(data)
	return proto, err
}

// Verify parses a compiled chunk and checks it against sourceData: if
// the chunk's embedded hash doesn't match the source's current hash,
// ErrMismatchedHash is returned (with the parsed chunk, which callers
// may still fall back to). A version mismatch is reported as an error
// prefixed by MismatchVersionPrefix.
func Verify(data, sourceData []byte) (*Prototype, error) {
	proto, hash, err := decode(data)
	if err != nil {
		return nil, err
	}
	if sourceData != nil && hash != md5Hex(sourceData) {
		return proto, ErrMismatchedHash
	}
	return proto, nil
}

func decode(data []byte) (*Prototype, string, error) {
	if len(data) < headerLen+hashLen {
		return nil, "", errors.New("truncated chunk")
	}
	if !bytes.HasPrefix(data, []byte{'\x1b'}) {
		return nil, "", errors.New(MismatchVersionPrefix + "not a compiled chunk")
	}
	if data[1] != byte(math.Float64bits(VERSION)) {
		return nil, "", errors.New(MismatchVersionPrefix + "incompatible chunk version")
	}
	sig := string(data[2 : 2+len(SIGNATURE)])
	if sig != SIGNATURE {
		return nil, "", errors.New(MismatchVersionPrefix + "bad signature")
	}
	hash := string(data[headerLen : headerLen+hashLen])
	body := data[headerLen+hashLen:]
	var proto Prototype
	if err := json.Unmarshal(body, &proto); err != nil {
		return nil, "", err
	}
	return &proto, hash, nil
}

func md5Hex(data []byte) string {
	return fmt.Sprintf("%x", md5.Sum(data))
}
