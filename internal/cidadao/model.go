package cidadao

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("cidadão não encontrado")

// Cidadao representa o munícipe atendido pelo gabinete.
type Cidadao struct {
	ID             uuid.UUID `json:"id"`
	NomeCompleto   string    `json:"nome_completo"`
	Telefone       string    `json:"telefone"`
	DataNascimento string    `json:"data_nascimento"`
	Bairro         string    `json:"bairro"`
	Cidade         string    `json:"cidade"`
	Estado         string    `json:"estado"`
	Email          *string   `json:"email"`
	CriadoEm       time.Time `json:"criado_em"`
}

// Resumo é a projeção embutida em demandas.
type Resumo struct {
	ID           uuid.UUID `json:"id"`
	NomeCompleto string    `json:"nome_completo"`
	Telefone     string    `json:"telefone"`
}

// CreateInput encapsula o cadastro de um cidadão.
type CreateInput struct {
	NomeCompleto   string  `json:"nome_completo"`
	Telefone       string  `json:"telefone"`
	DataNascimento string  `json:"data_nascimento"`
	Bairro         string  `json:"bairro"`
	Cidade         string  `json:"cidade"`
	Estado         string  `json:"estado"`
	Email          *string `json:"email"`
}
