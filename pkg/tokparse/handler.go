package tokparse

// Handler 处理一个已匹配的表达式并返回替换文本。
//
// expr 为定界符之间的内容，其中转义的 close 已还原。
type Handler interface {
	HandleToken(expr string) (string, error)
}

// HandlerFunc 将普通函数适配为 [Handler]。
type HandlerFunc func(expr string) (string, error)

// HandleToken 调用 f(expr)。
func (f HandlerFunc) HandleToken(expr string) (string, error) {
	return f(expr)
}

func isNilHandler(h Handler) bool {
	if h == nil {
		return true
	}
	if f, ok := h.(HandlerFunc); ok && f == nil {
		return true
	}

	return false
}
