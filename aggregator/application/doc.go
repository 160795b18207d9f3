// Package application contém os casos de uso da agregação de posts.
//
// Ele depende apenas do pacote domain (e do logger) e não conhece net/http.
//   - Call: execução resiliente de uma chamada upstream com budget de tempo
//   - UserCache: deduplicação de autores dentro de um request
//   - Aggregator: busca posts e enriquece com comentários e autor em paralelo
//   - Deleter: encaminha a remoção de um post e traduz o status do upstream
package application
