// Package tokparse 提供通用的占位符扫描与替换。
//
// [Parser] 持有一对定界符（open / close）和一个 [Handler]，
// 单次从左到右扫描文本，把每个未转义且闭合的 open...close 表达式
// 替换为 Handler 的返回值。
//
// # 语义说明
//
//  1. 紧邻定界符之前的反斜杠表示转义，反斜杠被移除，定界符按字面输出
//  2. 表达式内部的 "\}" 会被还原为 "}" 后交给 Handler
//  3. 未闭合的表达式原样输出，不调用 Handler
//  4. 不支持嵌套，open 总是与其后第一个未转义的 close 配对
//  5. Handler 返回的 error 原样返回给调用方，不返回部分结果
//
// # 快速开始
//
//	p, err := tokparse.New("${", "}", tokparse.HandlerFunc(func(expr string) (string, error) {
//	    return strings.ToUpper(expr), nil
//	}))
//	out, err := p.Parse("hello ${name}") // "hello NAME"
//
// Parser 创建后不可变，可在多个 goroutine 间共享，前提是 Handler 本身并发安全。
package tokparse
