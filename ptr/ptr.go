package ptr

func To[T any](v T) *T {
	return &v
}

func String(s string) *string {
	return &s
}
