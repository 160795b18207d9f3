// Package domain define os tipos e contratos da agregação de posts.
//
// Este pacote não depende de net/http nem de implementações concretas dos
// serviços upstream (posts, comments, users). A camada application orquestra
// as chamadas; a camada infra fornece clientes HTTP, pool de workers,
// throttle e persistência de estatísticas.
package domain
