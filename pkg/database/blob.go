package database

type Blob struct {
	Data []byte
}

func NewBlob(data []byte) *Blob {
	return &Blob{Data: data}
}

func (b *Blob) Type() string {
	return "blob"
}

func (b *Blob) Bytes() []byte {
	return b.Data
}
