// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - HTTPUpstream: cliente JSON para os serviços de posts, comments e users
//   - ChanPool: semáforo simples que limita chamadas upstream simultâneas
//   - Throttle: token bucket por serviço usando golang.org/x/time/rate
//   - MemoryStatsStore / RedisStatsStore: contadores de desfecho das chamadas
package infra
