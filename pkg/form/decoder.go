package form

// maxNameLen begrenzt Feldnamen, Werte werden dagegen gestreamt
const maxNameLen = 64

// Decoder parses an application/x-www-form-urlencoded body incrementally and
// hands every decoded piece of a value to the Fragments store as soon as it
// arrives. A value split across several Write calls therefore reaches the
// store as several fragments of the same name.
type Decoder struct {
	dst     *Fragments
	name    []byte
	val     []byte
	inValue bool
	pct     int // 0 = kein Escape, 1 = nach '%', 2 = nach erster Hex-Ziffer
	hi      byte
	err     error
}

// NewDecoder returns a decoder writing into dst
func NewDecoder(dst *Fragments) *Decoder {
	return &Decoder{dst: dst}
}

// Write consumes the next piece of the body.
func (d *Decoder) Write(p []byte) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	for i, c := range p {
		d.step(c)
		if d.err != nil {
			return i, d.err
		}
	}
	// Teilwert sofort abliefern, nichts über Write-Grenzen puffern
	d.flushValue()
	if d.err != nil {
		return len(p), d.err
	}
	return len(p), nil
}

// Close delivers a trailing field that was not terminated by '&'.
func (d *Decoder) Close() error {
	if d.err != nil {
		return d.err
	}
	d.endField()
	return d.err
}

func (d *Decoder) step(c byte) {
	switch d.pct {
	case 1:
		if isHex(c) {
			d.hi = c
			d.pct = 2
			return
		}
		// Ungültiges Escape wird literal übernommen
		d.pct = 0
		d.put('%')
		d.step(c)
		return
	case 2:
		d.pct = 0
		if isHex(c) {
			d.put(unhex(d.hi)<<4 | unhex(c))
			return
		}
		d.put('%')
		d.put(d.hi)
		d.step(c)
		return
	}

	switch c {
	case '&':
		d.endField()
	case '=':
		if d.inValue {
			d.put(c)
			return
		}
		d.inValue = true
		d.accept(nil)
	case '+':
		d.put(' ')
	case '%':
		d.pct = 1
	default:
		d.put(c)
	}
}

func (d *Decoder) put(c byte) {
	if d.inValue {
		d.val = append(d.val, c)
		return
	}
	if len(d.name) >= maxNameLen {
		d.err = ErrExhausted
		return
	}
	d.name = append(d.name, c)
}

func (d *Decoder) flushPercent() {
	switch d.pct {
	case 1:
		d.pct = 0
		d.put('%')
	case 2:
		d.pct = 0
		d.put('%')
		d.put(d.hi)
	}
}

func (d *Decoder) flushValue() {
	if !d.inValue || len(d.val) == 0 {
		return
	}
	d.accept(d.val)
	d.val = d.val[:0]
}

func (d *Decoder) endField() {
	d.flushPercent()
	switch {
	case d.inValue:
		d.flushValue()
	case len(d.name) > 0:
		// Feld ohne '=' zählt als vorhanden mit leerem Wert
		d.accept(nil)
	}
	d.name = d.name[:0]
	d.inValue = false
}

func (d *Decoder) accept(p []byte) {
	if d.err != nil || len(d.name) == 0 {
		return
	}
	if err := d.dst.Accept(string(d.name), p); err != nil {
		d.err = err
	}
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
