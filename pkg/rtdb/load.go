package rtdb

import "os"

// LoadBuffer opens a table over the byte image in data, for example
// one obtained from [Buffer.Bytes] after [Table.IntoInner].
func LoadBuffer[T any, P Datapointer[T]](opts Options, data []byte) (*Table[T, P], error) {
	return Load[T, P](opts, NewBuffer(data))
}

// OpenFile opens an existing file-backed table at path.
//
// The file is owned by the table and closed by [Table.Close].
func OpenFile[T any, P Datapointer[T]](opts Options, path string) (*Table[T, P], error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, ioErr("open file", err)
	}

	t, err := Load[T, P](opts, f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	return t, nil
}
