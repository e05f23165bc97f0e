package campaign

import "errors"

var ErrEntityNotResolved = errors.New("conta não encontrada para o nome informado no arquivo")
