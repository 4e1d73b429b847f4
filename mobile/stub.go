//go:build !mobile

// stub.go - 桌面构建时的占位文件
//
// 桌面端入口是根目录的 main.go；绑定代码只在 -tags mobile 时编译。
package mobile

// Dummy 是一个空导出函数，保证桌面构建时包不为空
func Dummy() {}
