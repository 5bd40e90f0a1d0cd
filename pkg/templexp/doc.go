// Package templexp 提供配置字符串的 Shell 参数展开。
//
// 该包仅处理 ${...} 语法，适合在 YAML/JSON 等配置文件中做轻量替换。
// 不执行命令、不引入模板引擎，强调可读性与可预测性。
// 扫描与转义由 [tokparse.Parser] 完成，本包只负责表达式求值。
//
// # 设计参考
//
//   - Bash 参数展开: https://www.gnu.org/software/bash/manual/bash.html#Shell-Parameter-Expansion
//
// # 语义说明
//
//  1. 仅做字符串层面的替换（不解析 $VAR）
//  2. "\${" 输出字面量 "${"，表达式内 "\}" 输出字面量 "}"
//  3. 不支持直接嵌套：${A:-${B}} 在第一个 "}" 处结束，结果为字面量 "${B}"，并记录 Warn 日志；
//     需写作 ${A:-${B\}}，转义后的 "${B}" 会在默认值中再展开一次
//  4. ":=" 赋值仅作用于当前展开过程
//  5. 无法识别的表达式与未闭合的 "${" 保持原样；表达式内的 "}" 输出时重新转义，
//     例如 ${1a\}b} 输出 ${1a\}b}，再次展开结果不变
//
// # 快速开始
//
// 展开配置文件中的环境变量引用：
//
//	content := `api_key: "${OPENAI_API_KEY}"`
//	expanded, err := templexp.ExpandTemplate(content)
//
// 使用默认值处理缺失的环境变量：
//
//	content := `model: "${LLM_MODEL:-gpt-4}"`
//	expanded, err := templexp.ExpandTemplate(content)
//
// 使用自定义变量与定界符：
//
//	e, err := templexp.New(
//	    templexp.WithDelimiters("{{", "}}"),
//	    templexp.WithVars(map[string]string{"name": "demo"}),
//	    templexp.WithoutEnv(),
//	)
//	out, err := e.Expand("hello {{name}}")
//
// 详见 [ExpandTemplate] 与 [Expander] 文档。
package templexp
