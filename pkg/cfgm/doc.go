// Package cfgm 将默认值、配置文件、环境变量与 CLI flags 合并为一个配置结构体。
//
// 结构体字段的 json tag 即配置 key，嵌套结构体以 "." 连接，
// 例如 Parser.UseEnv (`json:"use-env"`) 的 key 为 parser.use-env。
// 同一个 key 同时决定文件字段、环境变量名与 flag 名：
//
//	parser.use-env  ←  parser: {use-env: true}        (YAML/JSON)
//	                ←  TOKPARSE_PARSER_USE_ENV=true   ([WithEnvPrefix]("TOKPARSE_"))
//	                ←  --parser-use-env               ([WithCommand])
//
// 后面的来源覆盖前面的来源；flag 只有被显式设置时才生效。
//
// # 配置文件
//
// 按 [DefaultPaths] 或 [WithConfigPaths] 的顺序查找，只读取第一个存在的文件。
// ".json" 扩展名使用 JSON 解析，其余按 YAML 解析。
// 相对路径默认基于 go.mod 所在目录（见 [FindProjectRoot]），可用 [WithBaseDir] 修改。
// 文件中出现结构体未定义的 key 时记录 Warn 日志，加载继续。
//
// # 模板展开
//
// 默认值中的字符串与配置文件原文在解析前经过 templexp 展开：
//
//	server:
//	  addr: "${TOKPARSE_ADDR:-:40117}"
//	  banner: '\${literal}'   # 反斜杠转义，结果为 ${literal}
//
// 变量取自进程环境，[WithEnvFiles] 中的 .env 文件覆盖同名变量且不写入进程环境。
// [WithoutTemplateExpansion] 关闭展开。
//
// # 展平
//
// [Flatten] 将解析后的嵌套 map 转为 "a.b" → 字符串，供模板变量文件使用。
package cfgm
