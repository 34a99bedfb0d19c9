// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - ChanPool: semáforo baseado em channel para as vagas de processamento
//   - AtomicSequencer: contador de requisições
//   - ClientBuckets: token bucket por cliente usando golang.org/x/time/rate
//   - MemoryStatsStore, RedisStatsStore, Metrics, NATSPublisher: destinos de Record
package infra
