package bind_group_provider

// BufferWrite describes a single GPU buffer write targeting a specific binding on a
// BindGroupProvider at a given byte offset. The camera uniform is rewritten this way once per frame.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}
