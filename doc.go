// Package securechannel 提供身份认证的端到端加密通信通道
//
// 在一个消息路由运行时之上，为可寻址的对端之间建立"安全通道"：
// 相互认证的 Noise XX 握手、信任策略把关、任意深度的通道嵌套（隧道），
// 以及基于最近一跳已验证身份的投递前访问控制。
//
// 基本用法：
//
//	alice, _ := securechannel.New()
//	bob, _ := securechannel.New(securechannel.WithRuntime(alice.Runtime()))
//
//	bob.CreateSecureChannelListener("bob_listener",
//		securechannel.NewTrustIdentifierPolicy(alice.Identifier()))
//
//	ch, _ := alice.CreateSecureChannel(ctx,
//		securechannel.NewRoute("bob_listener"),
//		securechannel.NewTrustIdentifierPolicy(bob.Identifier()))
//
//	ctx_, _ := alice.NewContext()
//	ctx_.Send(securechannel.NewRoute(ch, receiverAddr), []byte("ping"))
//
// 经通道送达的消息携带身份附件（FindLocalInfo），
// 受保护的接收端用访问控制谓词（NewIdentifierAccessControl 等）
// 决定是否接受投递。
package securechannel
